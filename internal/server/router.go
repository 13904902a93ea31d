package server

import (
	"net/http"
	"time"

	"auction-marketplace/internal/ratelimit"
	handler "auction-marketplace/services/auction/handler"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

// Services are the domain services behind the HTTP surface
type Services struct {
	Bidding    handler.BiddingServiceInterface
	Categories handler.CategoryServiceInterface
	Auctions   handler.AuctionServiceInterface
	Ratings    handler.RatingServiceInterface
	Comments   handler.CommentServiceInterface
}

// Options configure the cross-cutting middleware. Zero values mean anonymous-only
// access, no bid throttling and the wall clock.
type Options struct {
	Verifier   TokenVerifier
	BidLimiter ratelimit.Limiter
	Now        func() time.Time
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(svc Services, opts Options) *gin.Engine {
	if opts.BidLimiter == nil {
		opts.BidLimiter = ratelimit.Unlimited{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestIDMiddleware)     // correlate logs and responses
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(ClockMiddleware(opts.Now))
	router.Use(AuthMiddleware(opts.Verifier))

	router.GET("/healthz", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, gin.H{"status": "ok"}, "service healthy")
	})

	categoryHandler := handler.NewCategoryHandler(svc.Categories)
	auctionHandler := handler.NewAuctionHandler(svc.Auctions)
	biddingHandler := handler.NewBiddingHandler(svc.Bidding)
	ratingHandler := handler.NewRatingHandler(svc.Ratings)
	commentHandler := handler.NewCommentHandler(svc.Comments)
	bidLimit := RateLimitMiddleware(opts.BidLimiter, "bids")

	categories := router.Group("/categorias")
	{
		categories.GET("/", categoryHandler.ListCategoriesHandler)
		categories.POST("/crear", categoryHandler.CreateCategoryHandler)
		categories.GET("/:id/", categoryHandler.GetCategoryHandler)
		categories.PUT("/:id/", categoryHandler.UpdateCategoryHandler)
		categories.DELETE("/:id/", categoryHandler.DeleteCategoryHandler)
	}

	auctions := router.Group("/subastas")
	{
		auctions.GET("/", auctionHandler.ListAuctionsHandler)
		auctions.POST("/", auctionHandler.CreateAuctionHandler)

		auctions.GET("/mis-subastas/", auctionHandler.MyAuctionsHandler)
		auctions.GET("/mis-pujas/", biddingHandler.MyBidsHandler)
		auctions.GET("/mis-comentarios/", commentHandler.MyCommentsHandler)

		auctions.GET("/mis-ratings/", ratingHandler.MyRatingsHandler)
		auctions.POST("/mis-ratings/", ratingHandler.SubmitRatingHandler)
		auctions.GET("/mis-ratings/:auctionId/", ratingHandler.GetRatingHandler)
		auctions.PUT("/mis-ratings/:auctionId/", ratingHandler.UpdateRatingHandler)
		auctions.DELETE("/mis-ratings/:auctionId/", ratingHandler.DeleteRatingHandler)

		auctions.GET("/:id/", auctionHandler.GetAuctionHandler)
		auctions.PUT("/:id/", auctionHandler.UpdateAuctionHandler)
		auctions.DELETE("/:id/", auctionHandler.DeleteAuctionHandler)

		auctions.GET("/:id/pujas/", biddingHandler.ListBidsHandler)
		auctions.POST("/:id/pujas/", bidLimit, biddingHandler.SubmitBidHandler)
		auctions.GET("/:id/pujas/ganadora/", biddingHandler.GetWinningBidHandler)
		auctions.GET("/:id/pujas/:bidId/", biddingHandler.GetBidHandler)
		auctions.PUT("/:id/pujas/:bidId/", bidLimit, biddingHandler.RaiseBidHandler)
		auctions.DELETE("/:id/pujas/:bidId/", biddingHandler.DeleteBidHandler)

		auctions.GET("/:id/comentarios/", commentHandler.ListCommentsHandler)
		auctions.POST("/:id/comentarios/", commentHandler.PostCommentHandler)
		auctions.GET("/:id/comentarios/:commentId/", commentHandler.GetCommentHandler)
		auctions.PUT("/:id/comentarios/:commentId/", commentHandler.UpdateCommentHandler)
		auctions.DELETE("/:id/comentarios/:commentId/", commentHandler.DeleteCommentHandler)
	}

	return router
}
