package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PhilipDev237/opend/src/api/middleware"
	"github.com/PhilipDev237/opend/src/common/errcode"
	"github.com/PhilipDev237/opend/src/common/utils"
	"github.com/PhilipDev237/opend/src/common/xhttp"
	"github.com/PhilipDev237/opend/src/service/item"
	"github.com/PhilipDev237/opend/src/service/svc"
	"github.com/PhilipDev237/opend/src/service/v1"
	"github.com/PhilipDev237/opend/src/types/v1"
)

// ItemCardHandler 加载 item 卡片
// role 为 collection 时展示 Sell, 为 discover 时展示 Buy 与价格, 缺省为 collection
func ItemCardHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 解析 item id 与 role
		id, ok := itemIDParam(c)
		if !ok {
			return
		}
		var params types.ItemCardParams
		if err := c.ShouldBindQuery(&params); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if err := utils.Verify(&params); err != nil {
			xhttp.Error(c, errcode.NewCustomErr("Role must be collection or discover."))
			return
		}
		role := item.RoleCollection
		if params.Role != "" {
			role = item.Role(params.Role)
		}

		// 2. 依次调用 NFT 与市场 canister 加载卡片
		res, err := service.GetItemCard(c.Request.Context(), svcCtx, middleware.GetCaller(c), id, role)
		if err != nil {
			abortWithErr(c, "failed on load item card", err)
			return
		}
		xhttp.OkJson(c, res)
	}
}

// ItemImageHandler 直接返回 NFT 图片
func ItemImageHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := itemIDParam(c)
		if !ok {
			return
		}
		data, contentType, err := service.GetItemImage(c.Request.Context(), svcCtx, middleware.GetCaller(c), id)
		if err != nil {
			abortWithErr(c, "failed on get item image", err)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

// ItemSellHandler 点击 Sell, 显示价格输入框
func ItemSellHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := itemIDParam(c)
		if !ok {
			return
		}
		res, err := service.SellItem(c.Request.Context(), svcCtx, middleware.GetCaller(c), id)
		if err != nil {
			abortWithErr(c, "failed on sell item", err)
			return
		}
		xhttp.OkJson(c, res)
	}
}

// ItemConfirmHandler 点击 Confirm, 以输入的价格挂单
func ItemConfirmHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 解析 item id 与价格
		id, ok := itemIDParam(c)
		if !ok {
			return
		}
		var req types.ConfirmParams
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if err := utils.Verify(&req); err != nil {
			xhttp.Error(c, errcode.NewCustomErr("Price must be a positive integer."))
			return
		}

		// 2. 从会话恢复卡片并挂单
		res, err := service.ConfirmItem(c.Request.Context(), svcCtx, middleware.GetCaller(c), id, req.Price)
		if err != nil {
			abortWithErr(c, "failed on confirm item", err)
			return
		}
		xhttp.OkJson(c, res)
	}
}

// ItemBuyHandler 点击 Buy, 转账并完成交易
func ItemBuyHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := itemIDParam(c)
		if !ok {
			return
		}
		res, err := service.BuyItem(c.Request.Context(), svcCtx, middleware.GetCaller(c), id)
		if err != nil {
			abortWithErr(c, "failed on buy item", err)
			return
		}
		xhttp.OkJson(c, res)
	}
}
