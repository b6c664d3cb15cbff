// @title           jobboard API
// @version         1.0
// @description     Вакансии, отклики и переписка между работодателем и соискателем.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

package main

import "jobboard_backend/internal/app"

func main() {
	app.Run()
}
