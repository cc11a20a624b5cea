package main

import "prospera/internal/app"

// @title           Prospera API
// @version         1.0
// @description     Sales pipeline and opportunity tracking for a financial-planning firm.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in              header
// @name            Authorization
func main() {
	app.Run()
}
