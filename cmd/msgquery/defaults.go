package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/spachava753/msgquery/phone"
)

const contactsFileName = "contacts_map.json"

func initViperDefaults() {
	viper.SetDefault("contacts.path", defaultContactsPath())
	viper.SetDefault("messages.db_path", "")
	viper.SetDefault("phone.default_region", phone.DefaultRegion)
	viper.SetDefault("gmail.address", "")
	viper.SetDefault("gmail.app_password", "")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.file", "")
}

// defaultContactsPath is contacts_map.json beside the executable, falling
// back to the working directory.
func defaultContactsPath() string {
	exe, err := os.Executable()
	if err != nil {
		return contactsFileName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), contactsFileName)
}
