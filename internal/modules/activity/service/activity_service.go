package service

import (
	"context"
	"net/http"
	"net/url"

	"be4you/internal/apiclient"
	"be4you/internal/model/activitymodel"
	"be4you/internal/pkg/log"
	"be4you/internal/pkg/response"
	"be4you/internal/pkg/validator"
	"be4you/internal/pkg/xerrors"
)

// 活动相关 endpoint
const (
	EndpointActivities      = "/Activities"
	EndpointCreateWithItems = "/Activities/CreateWithItems"
)

// ActivityService 活动的增删改查,所有请求都需要登录态
type ActivityService struct {
	client    *apiclient.Client
	validator *validator.CustomValidator
	logger    log.Logger
}

// NewActivityService 创建活动服务
func NewActivityService(client *apiclient.Client, logger log.Logger) *ActivityService {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &ActivityService{
		client:    client,
		validator: validator.New(),
		logger:    logger.With("module", "activity_service"),
	}
}

// CreateWithItems 创建活动及其物品清单
func (s *ActivityService) CreateWithItems(ctx context.Context, payload activitymodel.ActivityPayload) apiclient.Response[activitymodel.ActivityDetail] {
	if resp, ok := s.check(ctx, payload); !ok {
		return resp
	}
	return apiclient.PostAs[activitymodel.ActivityDetail](ctx, s.client, EndpointCreateWithItems, payload)
}

// Update 更新活动,发送完整 payload(活动主体 + 物品清单)
func (s *ActivityService) Update(ctx context.Context, id string, payload activitymodel.ActivityPayload) apiclient.Response[activitymodel.ActivityDetail] {
	if id == "" {
		return response.Failure[activitymodel.ActivityDetail](http.StatusBadRequest, xerrors.NewValidationError("id", "id is required"))
	}
	if resp, ok := s.check(ctx, payload); !ok {
		return resp
	}
	payload.Activity.ID = &id
	return apiclient.PutAs[activitymodel.ActivityDetail](ctx, s.client, activityPath(id), payload)
}

// List 列出当前用户可见的活动
func (s *ActivityService) List(ctx context.Context) apiclient.Response[[]activitymodel.ActivityDetail] {
	return apiclient.GetAs[[]activitymodel.ActivityDetail](ctx, s.client, EndpointActivities)
}

// Get 查询单个活动
func (s *ActivityService) Get(ctx context.Context, id string) apiclient.Response[activitymodel.ActivityDetail] {
	if id == "" {
		return response.Failure[activitymodel.ActivityDetail](http.StatusBadRequest, xerrors.NewValidationError("id", "id is required"))
	}
	return apiclient.GetAs[activitymodel.ActivityDetail](ctx, s.client, activityPath(id))
}

// Delete 删除活动
func (s *ActivityService) Delete(ctx context.Context, id string) apiclient.Response[any] {
	if id == "" {
		return response.Failure[any](http.StatusBadRequest, xerrors.NewValidationError("id", "id is required"))
	}
	return apiclient.DeleteAs[any](ctx, s.client, activityPath(id))
}

// check 校验 payload; 图片过大只记录警告
func (s *ActivityService) check(ctx context.Context, payload activitymodel.ActivityPayload) (apiclient.Response[activitymodel.ActivityDetail], bool) {
	if appErr := s.validator.Struct(payload); appErr != nil {
		return response.Failure[activitymodel.ActivityDetail](http.StatusBadRequest, appErr), false
	}
	if payload.ImageTooLarge() {
		s.logger.WarnContext(ctx, "activity image exceeds recommended size",
			log.Int("image_bytes", payload.ImageSize()),
			log.Int("limit_bytes", activitymodel.MaxImageBytes))
	}
	return apiclient.Response[activitymodel.ActivityDetail]{}, true
}

func activityPath(id string) string {
	return EndpointActivities + "/" + url.PathEscape(id)
}
