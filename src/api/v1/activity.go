package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/PhilipDev237/opend/src/common/errcode"
	"github.com/PhilipDev237/opend/src/common/utils"
	"github.com/PhilipDev237/opend/src/common/xhttp"
	"github.com/PhilipDev237/opend/src/service/svc"
	"github.com/PhilipDev237/opend/src/service/v1"
	"github.com/PhilipDev237/opend/src/types/v1"
)

// ItemActivitiesHandler 分页查询 item 的挂单与成交记录
func ItemActivitiesHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := itemIDParam(c)
		if !ok {
			return
		}
		var params types.ActivityParams
		if err := c.ShouldBindQuery(&params); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if err := utils.Verify(&params); err != nil {
			xhttp.Error(c, errcode.NewCustomErr("Page size must not exceed 100."))
			return
		}
		if params.Page <= 0 {
			params.Page = defaultPage
		}
		if params.PageSize <= 0 {
			params.PageSize = defaultPageSize
		}

		res, err := service.GetItemActivities(c.Request.Context(), svcCtx, id, params.Page, params.PageSize)
		if err != nil {
			abortWithErr(c, "failed on query item activities", err)
			return
		}
		xhttp.OkJson(c, res)
	}
}
