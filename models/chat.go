package models

type ChatPostRequest struct {
	// Message to relay to the model. A nil Message means the field was
	// missing from the request body.
	Message *string `json:"message"`
}

type ChatPostResponse struct {
	Reply string `json:"reply"`
}

type ChatPostError struct {
	Error string `json:"error"`
}

// ChatPostServerError is the only error message returned to callers.
const ChatPostServerError = "server error"
