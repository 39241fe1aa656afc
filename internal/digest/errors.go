package digest

import "errors"

var errNoDisplayName = errors.New("user record has no display name")
