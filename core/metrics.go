package core

// Metrics records domain events.
type Metrics interface {
	ApplicationSubmitted(appType string)
	ApplicationStatusChanged(status string)
	ApplicationsDeleted(n int)
	SettingsFallback()
	SignIn(result string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

var _ Metrics = NopMetrics{}

func (NopMetrics) ApplicationSubmitted(string)     {}
func (NopMetrics) ApplicationStatusChanged(string) {}
func (NopMetrics) ApplicationsDeleted(int)          {}
func (NopMetrics) SettingsFallback()               {}
func (NopMetrics) SignIn(string)                   {}
