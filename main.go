package main

import "campuscore/internal/app"

// @title           CampusCore API
// @version         1.0
// @description     School personnel records backend: role-based user accounts, student/teacher/staff profiles and OTP email login.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
