package sim

// AdminStatusWriter allows writers to show whether the admin server is listening.
type AdminStatusWriter interface {
	SetAdminStatus(listening bool)
}
