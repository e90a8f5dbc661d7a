package views

// Notifier receives the toast-style notifications the views emit. Failures
// are always generic; the underlying error never reaches the user.
type Notifier interface {
	Success(title, detail string)
	Failure(title, detail string)
	Warning(title, detail string)
}
