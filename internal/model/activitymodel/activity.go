package activitymodel

// Unit 物品计量单位
type Unit string

const (
	UnitKilogram Unit = "Kilogram"
	UnitLitre    Unit = "Litre"
	UnitPiece    Unit = "Adet"
)

// MaxImageBytes imageData 字符串超过该长度时记录警告(请求仍会发送)
const MaxImageBytes = 1 << 20

// Activity 活动主体
type Activity struct {
	ID           *string `json:"id,omitempty"`
	Name         string  `json:"name" validate:"required,max=200"`
	ActivityTime string  `json:"activityTime" validate:"required"`
	Location     string  `json:"location" validate:"required"`
	// base64 编码的图片
	ImageData string `json:"imageData,omitempty"`
}

// ActivityItem 活动所需物品
type ActivityItem struct {
	ID        *string `json:"id,omitempty"`
	Name      string  `json:"name" validate:"required"`
	Unit      Unit    `json:"unit" validate:"required,oneof=Kilogram Litre Adet"`
	ItemCount int     `json:"itemCount" validate:"gte=0"`
}

// ActivityPayload 创建/更新活动的请求体
type ActivityPayload struct {
	Activity      Activity       `json:"activity" validate:"required"`
	ActivityItems []ActivityItem `json:"activityItems" validate:"required,dive"`
}

// ImageSize 返回 imageData 字符串长度(base64 编码后的字节数)
func (p ActivityPayload) ImageSize() int {
	return len(p.Activity.ImageData)
}

// ImageTooLarge 判断编码后的图片数据是否超过 MaxImageBytes
func (p ActivityPayload) ImageTooLarge() bool {
	return p.ImageSize() > MaxImageBytes
}

// ActivityDetail 服务端返回的活动详情
type ActivityDetail struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	ActivityTime  string         `json:"activityTime"`
	Location      string         `json:"location"`
	ImageData     string         `json:"imageData,omitempty"`
	ActivityItems []ActivityItem `json:"activityItems"`
	CreatedBy     string         `json:"createdBy,omitempty"`
}
