package vcs

import (
	"os"
	"path/filepath"
)

func lookupEnv(key string) string {
	v, _ := os.LookupEnv(key)
	return v
}

// identityFileExists checks for a default SSH identity file, mirroring the
// fallback go-git's ssh.NewPublicKeysFromFile would need.
func identityFileExists() bool {
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		if _, err := os.Stat(filepath.Join(home, ".ssh", name)); err == nil {
			return true
		}
	}
	return false
}
