package routes

import (
	"carebook/booking"
	"carebook/doctors"
	"carebook/middleware"
	"carebook/ratelim"
	"carebook/services"
	"carebook/users"

	"github.com/julienschmidt/httprouter"
)

func RoutesWrapper(router *httprouter.Router, rl *ratelim.RateLimiter) {
	AddServiceRoutes(router, rl)
	AddBookingRoutes(router, rl)
	AddUserRoutes(router, rl)
	AddDoctorRoutes(router, rl)
}

func AddServiceRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/services", rl.Limit(services.GetServices))
	router.GET("/api/available", rl.Limit(services.GetAvailable))
	router.POST("/api/services", middleware.Authenticate(middleware.RequireAdmin(services.CreateService)))
	router.PUT("/api/services/:id", middleware.Authenticate(middleware.RequireAdmin(services.UpdateService)))
	router.DELETE("/api/services/:id", middleware.Authenticate(middleware.RequireAdmin(services.DeleteService)))
}

func AddBookingRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/bookings", rl.Limit(booking.CreateBooking))
	router.GET("/api/bookings", middleware.Authenticate(booking.GetBookings))
	router.GET("/api/bookings/:id/confirmation", middleware.Authenticate(booking.PrintConfirmation))
	router.GET("/ws/available/:date", booking.HandleWS)
}

func AddUserRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.PUT("/api/users", rl.Limit(users.UpsertUser))
	router.GET("/api/users", middleware.Authenticate(users.GetUsers))
	router.PUT("/api/users/role", middleware.Authenticate(middleware.RequireAdmin(users.SetRole)))
	router.GET("/api/users/:email/admin", rl.Limit(users.CheckAdmin))
}

func AddDoctorRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/doctors", rl.Limit(doctors.GetDoctors))
	router.POST("/api/doctors", middleware.Authenticate(middleware.RequireAdmin(doctors.CreateDoctor)))
	router.DELETE("/api/doctors/:id", middleware.Authenticate(middleware.RequireAdmin(doctors.DeleteDoctor)))
}
