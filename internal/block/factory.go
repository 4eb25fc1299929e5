package block

import "fmt"

// New builds a Client from a backend type ("kubo" or "memory") and, for
// kubo, the base API URL.
func New(backendType, kuboAPI string) (Client, error) {
	switch backendType {
	case "kubo", "":
		return NewKuboClient(kuboAPI), nil
	case "memory":
		return NewMemClient(), nil
	default:
		return nil, fmt.Errorf("block: unknown backend type %q", backendType)
	}
}
