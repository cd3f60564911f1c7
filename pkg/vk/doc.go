// Package vk implements the OAuth 2.0 authorization code flow for VK (vk.com).
//
// The flow has three steps:
//
//   - LoginURL builds the authorization URL the browser is redirected to.
//   - Exchange trades the authorization code VK sends back for an access
//     token and the VK user id.
//   - Profile fetches the user's basic profile (id and display name)
//     through the users.get API method.
//
// # Client
//
// Client is immutable and safe for concurrent use. The user id travels
// explicitly inside the returned *Token:
//
//	client, err := vk.NewClient(&vk.Config{
//	    ClientID:     "1234567",
//	    ClientSecret: "app-secure-key",
//	    Scope:        vk.Scope(vk.PermissionEmail),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	loginURL, err := client.LoginURL("https://example.com/auth/vk/callback")
//	// redirect the browser to loginURL ...
//
//	token, err := client.Exchange(ctx, "https://example.com/auth/vk/callback", code)
//	if errors.Is(err, vk.ErrAuthorizationDenied) {
//	    // the user declined or the code was rejected
//	}
//
//	profile, err := client.Profile(ctx, token)
//	fmt.Println(profile.ID(), profile.Username())
//
// # Attempts
//
// Host authentication frameworks that call three separate hooks
// (build URL, exchange code, fetch user data) can use an Attempt, which
// records the user id between the last two calls. Create one Attempt per
// login callback; it must not be shared between requests.
//
// # Errors
//
// Configuration problems match ErrInvalidConfiguration and are reported by
// NewClient. Exchange reports denials as ErrAuthorizationDenied (with a
// *ProviderError when VK sent an error object), network failures and
// non-2xx statuses as ErrTransport, and malformed bodies as ErrParse.
// No request is ever retried.
//
// # Profile lookups
//
// The access token is sent with users.get by default. Set
// Config.PublicProfileLookup to look profiles up by user id alone.
package vk
