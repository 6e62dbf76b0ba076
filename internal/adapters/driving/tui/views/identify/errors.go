package identify

import "errors"

// ErrNoCandidateSearch indicates that no candidate search was provided.
var ErrNoCandidateSearch = errors.New("candidate search is required")
