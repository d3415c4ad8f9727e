package git

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"golang.org/x/crypto/ssh"
)

// CredentialProvider supplies authentication for a remote endpoint.
// A nil AuthMethod with a nil error means the endpoint needs no credentials.
type CredentialProvider interface {
	AuthMethod(endpoint *transport.Endpoint) (transport.AuthMethod, error)
}

// SSHKeyCredentials authenticates ssh remotes with a private key file.
// The public key is expected next to it with a .pub suffix.
type SSHKeyCredentials struct {
	PrivateKeyPath        string
	Passphrase            string
	InsecureIgnoreHostKey bool
}

// PublicKeyPath returns the conventional public key path for the private key
func (c *SSHKeyCredentials) PublicKeyPath() string {
	return c.PrivateKeyPath + ".pub"
}

// AuthMethod returns an ssh auth method that loads the key each time the
// server asks for it. Non-ssh endpoints get no credentials.
func (c *SSHKeyCredentials) AuthMethod(endpoint *transport.Endpoint) (transport.AuthMethod, error) {
	if endpoint == nil || endpoint.Protocol != "ssh" {
		return nil, nil
	}

	user := endpoint.User
	if user == "" {
		user = gitssh.DefaultUsername
	}

	auth := &gitssh.PublicKeysCallback{
		User:     user,
		Callback: c.Signers,
	}

	if c.InsecureIgnoreHostKey {
		// nolint:gosec // explicitly requested via configuration
		auth.HostKeyCallback = ssh.InsecureIgnoreHostKey()
		return auth, nil
	}

	hostKeys, err := gitssh.NewKnownHostsCallback()
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts: %w", err)
	}
	auth.HostKeyCallback = hostKeys
	return auth, nil
}

// Signers parses the private key. It reads the key files and nothing else, so
// it is safe to call once per authentication challenge.
func (c *SSHKeyCredentials) Signers() ([]ssh.Signer, error) {
	if c.PrivateKeyPath == "" {
		return nil, errors.New("no ssh private key configured")
	}

	pem, err := os.ReadFile(c.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	var signer ssh.Signer
	if c.Passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(pem, []byte(c.Passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(pem)
	}
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("private key %s is encrypted, a passphrase is required", c.PrivateKeyPath)
		}
		return nil, fmt.Errorf("failed to parse private key %s: %w", c.PrivateKeyPath, err)
	}

	if err := c.checkPublicKey(signer); err != nil {
		return nil, err
	}

	return []ssh.Signer{signer}, nil
}

// checkPublicKey verifies the .pub file, when there is one, matches the private key
func (c *SSHKeyCredentials) checkPublicKey(signer ssh.Signer) error {
	data, err := os.ReadFile(c.PublicKeyPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read public key: %w", err)
	}

	pub, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return fmt.Errorf("failed to parse public key %s: %w", c.PublicKeyPath(), err)
	}
	if !bytes.Equal(pub.Marshal(), signer.PublicKey().Marshal()) {
		return fmt.Errorf("public key %s does not match private key %s", c.PublicKeyPath(), c.PrivateKeyPath)
	}
	return nil
}
