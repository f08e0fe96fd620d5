package models

import "fmt"

// View names a navigable console view.
type View string

const (
	ViewLogin        View = "login"
	ViewRegister     View = "register"
	ViewDashboard    View = "dashboard"
	ViewStudents     View = "students"
	ViewCourses      View = "courses"
	ViewCourseDetail View = "course_detail"
	ViewReports      View = "reports"
	ViewSettings     View = "settings"
	ViewSearch       View = "search"
	ViewProfile      View = "profile"
)

// Entry points used for navigation signals.
const (
	PathLogin     = "/login"
	PathDashboard = "/"
)

var viewPaths = map[View]string{
	ViewLogin:        PathLogin,
	ViewRegister:     "/register",
	ViewDashboard:    PathDashboard,
	ViewStudents:     "/students",
	ViewCourses:      "/courses",
	ViewCourseDetail: "/courses/:courseName",
	ViewReports:      "/reports",
	ViewSettings:     "/settings",
	ViewSearch:       "/search",
	ViewProfile:      "/profile",
}

// ParseView resolves a view name.
func ParseView(raw string) (View, error) {
	v := View(raw)
	if _, ok := viewPaths[v]; !ok {
		return "", fmt.Errorf("unknown view %q", raw)
	}
	return v, nil
}

// Path returns the console route of the view.
func (v View) Path() string {
	return viewPaths[v]
}

// Public reports whether the view is reachable without a credential.
func (v View) Public() bool {
	return v == ViewLogin || v == ViewRegister
}
