package domain

// ValidationError ошибка проверки формы, обнаруженная до обращения к серверу.
// Сообщение показывается пользователю рядом с формой как есть.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
