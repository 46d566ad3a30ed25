package handlers

// HandlerBundle groups the endpoint handlers registered by routes.
type HandlerBundle struct {
	Scheduling *SchedulingHandler
	Providers  *ProviderHandler
	Session    *SessionHandler
}
