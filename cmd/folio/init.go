package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"text/template"
)

// envTemplate is the starter .env written by "folio init".
var envTemplate = template.Must(template.New("env").Parse(`# folio configuration
SITE_NAME={{.SiteName}}
SITE_URL=http://localhost:3000
SITE_DESCRIPTION=
SITE_AUTHOR=
ADDR=:3000

# Base URL of the content API (photos, blog entries, tags).
API_URL=http://localhost:8080

# Local SQLite database for the contact inbox.
DATABASE_PATH=data/folio.db

# Admin login. Generate the hash with: folio hash-password
ADMIN_EMAIL=admin@example.com
ADMIN_PASSWORD_HASH=
ADMIN_SESSION_SECRET={{.SessionSecret}}

# Set to true behind HTTPS.
COOKIE_SECURE=false
CACHE_TTL=5m
LOG_LEVEL=info
`))

type envData struct {
	SiteName      string
	SessionSecret string
}

// runInit writes a starter .env to path with a random session secret. It
// refuses to overwrite an existing file.
func runInit(path string, out io.Writer) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	secret, err := randomSecret(32)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := envTemplate.Execute(f, envData{SiteName: "Portfolio", SessionSecret: secret}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(out, "  created %s\n\n", path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  set API_URL and ADMIN_EMAIL")
	fmt.Fprintln(out, "  echo -n 'your-password' | folio hash-password   # paste into ADMIN_PASSWORD_HASH")
	fmt.Fprintln(out, "  folio serve")
	return nil
}

func randomSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
