package services

// ServiceError carries an HTTP-ready status code and a safe message up
// to the controller layer.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}
