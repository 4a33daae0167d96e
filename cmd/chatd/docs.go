package main

// General API documentation for swaggo. Run `swag init` to regenerate docs.
//
// @title           chatd API
// @version         1.0
// @description     HTTP API for a minimal local chat daemon.
//
// @contact.name   chatd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
