package main

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spachava753/msgquery/directory"
	"github.com/spachava753/msgquery/gmail"
	"github.com/spachava753/msgquery/macos/messages"
	"github.com/spachava753/msgquery/transcript"
)

// newService wires the configured stores into a transcript service. The
// returned func closes the message database.
func newService(logger *zap.Logger) (*transcript.Service, func(), error) {
	contacts := directory.NewSource(viper.GetString("contacts.path"), logger.Named("contacts"))

	store, err := messages.NewStore(messages.Options{
		Path:   viper.GetString("messages.db_path"),
		Logger: logger.Named("messages"),
	})
	if err != nil {
		return nil, nil, err
	}

	mail := gmail.NewStore(gmail.Options{
		Address:     viper.GetString("gmail.address"),
		AppPassword: viper.GetString("gmail.app_password"),
		Logger:      logger.Named("gmail"),
	})

	svc := transcript.NewService(transcript.Options{
		Contacts: contacts,
		Messages: store,
		Mail:     mail,
		Region:   viper.GetString("phone.default_region"),
		Logger:   logger.Named("transcript"),
	})
	logger.Debug("service configured",
		zap.String("contacts", contacts.Path()),
		zap.Int("contact_count", svc.ContactCount()),
		zap.String("messages_db", store.Path()))

	return svc, func() { _ = store.Close() }, nil
}
