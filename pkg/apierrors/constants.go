package apierrors

const (
	MsgInvalidTodoID        = "invalidTodoID"
	MsgInvalidTodoPayload   = "invalidTodoPayload"
	MsgInvalidTodoFilter    = "invalidTodoFilter"
	MsgInvalidPriorityLevel = "invalidPriorityLevel"
	MsgInvalidAuthPayload   = "invalidAuthPayload"
	MsgInvalidCredentials   = "invalidCredentials"
	MsgUserAlreadyExists    = "userAlreadyExists"
	MsgAuthRequired         = "authorizationRequired"
	MsgFailRegister         = "failRegister"
	MsgFailLogin            = "failLogin"
	MsgFailValidateToken    = "failValidateToken"
)
