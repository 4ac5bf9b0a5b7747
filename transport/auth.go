package transport

import (
	"crypto/sha1"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// MakeNoAuth returns a server config that lets anyone in. Authentication is
// not part of the chat protocol; users pick a name once connected.
func MakeNoAuth() *ssh.ServerConfig {
	config := ssh.ServerConfig{
		NoClientAuth: true,
		// Auth-related things should be constant-time to avoid timing attacks.
		PublicKeyCallback: func(conn ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			perm := &ssh.Permissions{Extensions: map[string]string{"fingerprint": Fingerprint(key)}}
			return perm, nil
		},
		KeyboardInteractiveCallback: func(conn ssh.ConnMetadata, challenge ssh.KeyboardInteractiveChallenge) (*ssh.Permissions, error) {
			return nil, nil
		},
	}

	return &config
}

// Fingerprint renders a public key as colon-separated SHA1 hex.
func Fingerprint(k ssh.PublicKey) string {
	hash := sha1.Sum(k.Marshal())
	r := fmt.Sprintf("% x", hash)
	return strings.Replace(r, " ", ":", -1)
}
