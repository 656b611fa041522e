package types

// GalleryResp 我的收藏 / 市场发现页
// Failed 为加载失败被略过的卡片数量
type GalleryResp struct {
	Result []ItemCard `json:"result"`
	Count  int        `json:"count"`
	Failed int        `json:"failed"`
}
