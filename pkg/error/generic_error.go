package error

// GenericError is implemented by every API-facing error so the recovery
// middleware can translate it into a JSON response.
type GenericError interface {
	error
	ErrCode() string
	StatusCode() int
}
