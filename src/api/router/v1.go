package router

import (
	"github.com/gin-gonic/gin"

	"github.com/PhilipDev237/opend/src/api/middleware"
	"github.com/PhilipDev237/opend/src/api/v1"
	"github.com/PhilipDev237/opend/src/common/principal"
	"github.com/PhilipDev237/opend/src/service/svc"
)

func loadV1(r *gin.Engine, svcCtx *svc.ServerCtx) {
	var defaultCaller principal.Principal
	limit, burst := 0.0, 0
	if svcCtx.C != nil {
		defaultCaller = svcCtx.C.DefaultCaller()
		limit, burst = svcCtx.C.Api.RateLimit, svcCtx.C.Api.RateBurst
	}

	apiV1 := r.Group("/api/v1")
	apiV1.Use(middleware.Identity(defaultCaller))

	items := apiV1.Group("/items")
	{
		items.GET("/:id/card", v1.ItemCardHandler(svcCtx))             // 加载卡片
		items.GET("/:id/image", v1.ItemImageHandler(svcCtx))           // NFT 图片
		items.GET("/:id/activities", v1.ItemActivitiesHandler(svcCtx)) // 挂单与成交记录

		// 写操作按调用者限流
		write := items.Group("", middleware.RateLimit(limit, burst))
		write.POST("/:id/sell", v1.ItemSellHandler(svcCtx))       // 显示价格输入框
		write.POST("/:id/confirm", v1.ItemConfirmHandler(svcCtx)) // 挂单
		write.POST("/:id/buy", v1.ItemBuyHandler(svcCtx))         // 购买
	}

	apiV1.GET("/collection", v1.CollectionHandler(svcCtx)) // 我的 NFT
	apiV1.GET("/discover", v1.DiscoverHandler(svcCtx))     // 市场挂单
}
