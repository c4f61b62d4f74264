package main

import "github.com/adanyl0v/task-manager/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustInitStorage()
	defer app.CloseStorage()

	app.MustInitServices()
	app.MustListenAndServeHTTP()
}
