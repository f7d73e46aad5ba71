// utils/firebase.go
package utils

import (
	"context"
	"fmt"

	"barberhive/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FirebaseClients holds the Firebase services the server uses: Auth verifies
// owner ID tokens, Messaging sends owner push notifications.
type FirebaseClients struct {
	Auth      *auth.Client
	Messaging *messaging.Client
}

// FirebaseInit initializes the Firebase App and its clients. It returns
// nil, nil when no credentials file is configured.
func FirebaseInit(ctx context.Context) (*FirebaseClients, error) {
	path := config.AppConfig.FirebaseCredentialsFile
	if path == "" {
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(path))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Auth client: %w", err)
	}
	fcmClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}
	return &FirebaseClients{Auth: authClient, Messaging: fcmClient}, nil
}
