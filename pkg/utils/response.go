package utils

// ResponseData is the JSON envelope used by all non-pipeline endpoints.
// Status is only used to set the HTTP status code, it is not serialized.
type ResponseData struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics with the given error so the recovery middleware can
// render it as a structured response.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}
