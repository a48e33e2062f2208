package auth

import (
	"fmt"
	"math/rand/v2"

	"game-lab/domain"

	"github.com/google/uuid"
)

var (
	adjectives = []string{"brave", "calm", "eager", "fancy", "gentle", "happy", "jolly", "kind", "lucky", "mighty", "proud", "quick", "silly", "witty", "zesty"}
	colors     = []string{"amber", "azure", "coral", "crimson", "golden", "indigo", "ivory", "jade", "lime", "olive", "plum", "ruby", "silver", "teal", "violet"}
	animals    = []string{"badger", "beaver", "falcon", "ferret", "gecko", "heron", "koala", "lemur", "lynx", "otter", "panda", "puffin", "raven", "tiger", "walrus"}
)

// RandomName returns an adjective-color-animal display name.
func RandomName() string {
	return fmt.Sprintf("%s-%s-%s",
		adjectives[rand.IntN(len(adjectives))],
		colors[rand.IntN(len(colors))],
		animals[rand.IntN(len(animals))])
}

// NewAnonymousUser mints a fresh identity for a guest.
func NewAnonymousUser() domain.User {
	return domain.User{ID: uuid.NewString(), Name: RandomName()}
}
