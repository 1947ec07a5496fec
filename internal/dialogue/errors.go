package dialogue

import "errors"

// ErrEmptyMessage is returned for a blank message. It is the only error the
// engine reports; everything else becomes a reply.
var ErrEmptyMessage = errors.New("dialogue: message is required")
