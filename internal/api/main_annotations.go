// Package api serves the read-only JSON API mounted at /api/v1.
//
// @title           joe-events API
// @version         1.0
// @description     Published events, their categories and ticket availability. Listings accept the same q, filters, page and limit parameters as the /events page.
// @BasePath        /api/v1
package api
