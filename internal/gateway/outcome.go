package gateway

// state is the position of one logical call in
// Pending -> {Success, AuthRetry -> {Success, AuthExpired}, OtherError}.
// Pending is implicit: a call is pending until attempt returns.
type state int

const (
	stateSuccess state = iota + 1
	stateAuthRetry
	stateAuthExpired
	stateOtherError
)

func (s state) String() string {
	switch s {
	case stateSuccess:
		return "success"
	case stateAuthRetry:
		return "auth_retry"
	case stateAuthExpired:
		return "auth_expired"
	case stateOtherError:
		return "other_error"
	default:
		return "pending"
	}
}

type outcome struct {
	state state
	body  []byte
	err   error
	// token is the access token the request was sent with.
	token string
}
