// Package screens holds the headless controllers behind each screen of the
// client: they fetch, filter, validate, and mutate, leaving rendering and
// navigation to the shell.
package screens

import (
	"errors"

	"boscov/client/internal/api"
)

var (
	// ErrForbidden is returned by admin screens when the signed-in user is
	// not an admin; the shell routes away.
	ErrForbidden = errors.New("admin role required")
	// ErrNotSignedIn is returned when a screen needs an identity and none is
	// held.
	ErrNotSignedIn = errors.New("not signed in")
)

const (
	fallbackLoadMsg   = "Não foi possível carregar os dados. Tente novamente."
	fallbackDeleteMsg = "Ocorreu um erro ao excluir. Tente novamente."
)

// loadErrMsg maps a fetch failure to the inline message a list shows.
// Unauthorized is handled globally at the gateway and never rendered inline.
func loadErrMsg(err error, fallback string) string {
	if errors.Is(err, api.ErrUnauthorized) {
		return ""
	}
	return api.Message(err, fallback)
}
