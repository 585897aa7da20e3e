// utils/firebase.go
package utils

import (
	"context"
	"fmt"

	"taskhive/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var FCMClient *messaging.Client

// FirebaseInit initializes the Firebase App and Messaging client. Without a
// credentials file push delivery stays disabled and FCMClient is nil.
func FirebaseInit(ctx context.Context) error {
	path := config.AppConfig.FirebaseCredentialsFile
	if path == "" {
		return nil
	}
	opt := option.WithCredentialsFile(path)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return fmt.Errorf("firebase: error initializing app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}

	FCMClient = client
	return nil
}
