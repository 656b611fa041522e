package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/PhilipDev237/opend/src/api/middleware"
	"github.com/PhilipDev237/opend/src/common/xhttp"
	"github.com/PhilipDev237/opend/src/service/svc"
	"github.com/PhilipDev237/opend/src/service/v1"
)

// CollectionHandler 调用者持有的 NFT 卡片
func CollectionHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := service.GetCollection(c.Request.Context(), svcCtx, middleware.GetCaller(c))
		if err != nil {
			abortWithErr(c, "failed on load collection", err)
			return
		}
		xhttp.OkJson(c, res)
	}
}

// DiscoverHandler 市场上挂单中的 NFT 卡片
func DiscoverHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := service.GetDiscover(c.Request.Context(), svcCtx, middleware.GetCaller(c))
		if err != nil {
			abortWithErr(c, "failed on load discover", err)
			return
		}
		xhttp.OkJson(c, res)
	}
}
