package subagentspec

import "errors"

// ErrConfiguration wraps every reason Definition validation can fail.
var ErrConfiguration = errors.New("subagentspec: invalid configuration")
