package main

import (
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/howeyc/gopass"
	"golang.org/x/crypto/ssh"
)

// ReadPrivateKey attempts to read your private key and possibly decrypt it if it
// requires a passphrase.
// This function will prompt for a passphrase on STDIN if the environment variable (`IDENTITY_PASSPHRASE`),
// is not set.
func ReadPrivateKey(path string) (ssh.Signer, error) {
	privateKey, err := os.ReadFile(expandHome(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %v", err)
	}

	pk, err := ssh.ParsePrivateKey(privateKey)
	if _, ok := err.(*ssh.PassphraseMissingError); !ok {
		return pk, err
	}

	passphrase := []byte(os.Getenv("IDENTITY_PASSPHRASE"))
	if len(passphrase) == 0 {
		fmt.Print("Enter passphrase: ")
		passphrase, err = gopass.GetPasswd()
		if err != nil {
			return nil, fmt.Errorf("couldn't read passphrase: %v", err)
		}
	}
	return ssh.ParsePrivateKeyWithPassphrase(privateKey, passphrase)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	u, err := user.Current()
	if err != nil {
		return path
	}
	return strings.Replace(path, "~", u.HomeDir, 1)
}
