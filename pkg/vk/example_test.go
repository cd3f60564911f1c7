package vk_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/jeremyhahn/go-vkauth/pkg/vk"
)

func ExampleClient_LoginURL() {
	client, err := vk.NewClient(&vk.Config{
		ClientID:     "app1",
		ClientSecret: "s3cr3t",
	})
	if err != nil {
		log.Fatal(err)
	}

	loginURL, err := client.LoginURL("https://example.com/cb")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(loginURL)
	// Output: https://oauth.vk.com/authorize?client_id=app1&redirect_uri=https://example.com/cb&scope=&response_type=code
}

func ExampleScope() {
	fmt.Println(vk.Scope(vk.PermissionEmail, vk.PermissionOffline))
	// Output: email,offline
}

func ExampleClient_Exchange() {
	client, err := vk.NewClient(&vk.Config{
		ClientID:     "1234567",
		ClientSecret: "app-secure-key",
		Scope:        vk.Scope(vk.PermissionEmail),
	})
	if err != nil {
		log.Fatal(err)
	}

	callback := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := client.Exchange(ctx, "https://example.com/auth/vk/callback", r.URL.Query().Get("code"))
		if errors.Is(err, vk.ErrAuthorizationDenied) {
			http.Error(w, "access denied", http.StatusForbidden)
			return
		}
		if err != nil {
			http.Error(w, "login failed", http.StatusBadGateway)
			return
		}

		profile, err := client.Profile(ctx, token)
		if err != nil {
			http.Error(w, "profile lookup failed", http.StatusBadGateway)
			return
		}

		fmt.Fprintf(w, "Hello, %s (id %s)\n", profile.Username(), profile.ID())
	}

	http.HandleFunc("/auth/vk/callback", callback)
}

func ExampleAttempt() {
	client, err := vk.NewClient(&vk.Config{
		ClientID:     "1234567",
		ClientSecret: "app-secure-key",
	})
	if err != nil {
		log.Fatal(err)
	}

	// One attempt per login callback.
	attempt := client.NewAttempt()

	token, err := attempt.ExchangeCodeForToken(context.Background(), "https://example.com/cb", "code-from-vk")
	if err != nil {
		log.Printf("exchange failed: %v", err)
		return
	}
	if token == "" {
		log.Println("VK did not issue a token")
		return
	}

	data, err := attempt.FetchProfile(context.Background(), token)
	if err != nil {
		log.Printf("profile lookup failed: %v", err)
		return
	}
	fmt.Println(data["username"])
}
