package app

// ContinuationMsg carries deferred work back onto the event loop: reply
// timers, notification expiry and microphone results all arrive this way.
type ContinuationMsg struct {
	Run func()
}
