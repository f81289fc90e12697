package main

import "github.com/zasai/zas-translate/cmd"

// @title       ZAS Translate API
// @version     0.1.0
// @description Webpage translation, history, statistics and the chat assistant.
// @BasePath    /api
// @securityDefinitions.apikey Bearer
// @in          header
// @name        Authorization
func main() {
	cmd.Execute()
}
