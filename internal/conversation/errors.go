package conversation

import "errors"

// ErrStorage indicates the underlying conversation storage failed or is
// unreachable. Check with errors.Is().
var ErrStorage = errors.New("conversation storage failure")
