package main

// @title Internship API
// @version 1.0.0
// @description Internship management backend: profiles, internships, diaries and evaluations.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	Execute()
}
