package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-pos/utils"
)

func CheckoutLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		terminal := c.Param("terminal")
		if terminal == "" {
			terminal = "api"
		}
		utils.InfoLogger.Printf("Checkout started on terminal %s", terminal)

		c.Next()

		if c.Writer.Status() < 300 {
			utils.InfoLogger.Printf("Checkout completed on terminal %s", terminal)
		} else {
			utils.ErrorLogger.Printf("Checkout failed on terminal %s with status %d", terminal, c.Writer.Status())
		}
	}
}
