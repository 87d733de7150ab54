package sim

// ZoneReporter is implemented by interactive writers that let an operator report
// emergencies. The callback registers a zone and returns the kernel's message.
type ZoneReporter interface {
	SetZoneReporter(func(x, y, severity int) string)
}
