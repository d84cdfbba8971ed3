package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/justsurfingit/talent-tracker/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ErrNoMailToken means the mailbox was never authorized. Run the
// mail-authorize command once to create the token file.
var ErrNoMailToken = errors.New("mailbox token missing")

// NewGmailService builds a read-only Gmail client from the stored token.
func NewGmailService(ctx context.Context, cfg config.MailConfig) (*gmail.Service, error) {
	oauthCfg, err := oauthConfig(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	tok, err := tokenFromFile(cfg.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoMailToken, cfg.TokenFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading mailbox token: %w", err)
	}

	return GmailServiceFromClient(ctx, oauthCfg.Client(ctx, tok))
}

func GmailServiceFromClient(ctx context.Context, client *http.Client) (*gmail.Service, error) {
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("creating Gmail service: %w", err)
	}
	return srv, nil
}

// AuthorizeGmail runs the interactive consent flow: it prints the consent
// URL to out, reads the code from in and saves the token.
func AuthorizeGmail(ctx context.Context, cfg config.MailConfig, in io.Reader, out io.Writer) error {
	oauthCfg, err := oauthConfig(cfg.CredentialsFile)
	if err != nil {
		return err
	}

	authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open this link to authorize mailbox access:\n%v\n\n", authURL)
	fmt.Fprint(out, "Paste the code here: ")

	var authCode string
	if _, err := fmt.Fscan(in, &authCode); err != nil {
		return fmt.Errorf("reading authorization code: %w", err)
	}

	tok, err := oauthCfg.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}

	fmt.Fprintf(out, "Saving mailbox token to: %s\n", cfg.TokenFile)
	return saveToken(cfg.TokenFile, tok)
}

func oauthConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading client secret file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret file: %w", err)
	}
	return cfg, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("caching oauth token: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
