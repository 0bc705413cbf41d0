package api

// Response is the JSON envelope returned by every endpoint
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func Ok(data interface{}) Response {
	return Response{Success: true, Data: data}
}

func OkMessage(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

func Error(message string) Response {
	return Response{Success: false, Message: message}
}

func ErrorData(message string, data interface{}) Response {
	return Response{Success: false, Message: message, Data: data}
}
