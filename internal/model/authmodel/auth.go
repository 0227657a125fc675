package authmodel

// -------------------------------请求模型-------------------------------

// LoginRequest 登录请求
type LoginRequest struct {
	// 邮箱
	Email string `json:"email" validate:"required,email" example:"user@example.com"`
	// 密码
	Password string `json:"password" validate:"required,min=6" example:"secret123"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100" example:"Ayse"`
	LastName  string `json:"lastName" validate:"required,max=100" example:"Yilmaz"`
	// 邮箱
	Email string `json:"email" validate:"required,email" example:"user@example.com"`
	// 密码
	Password string `json:"password" validate:"required,min=6" example:"secret123"`
	// 确认密码,必须与 Password 一致
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password" example:"secret123"`
}

// GoogleLoginRequest Google 登录请求,由客户端拿到 idToken 后提交
type GoogleLoginRequest struct {
	IDToken   string  `json:"idToken" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	PhotoURL  *string `json:"photoUrl,omitempty"`
}

// ForgotPasswordRequest 忘记密码请求
type ForgotPasswordRequest struct {
	// 邮箱
	Email string `json:"email" validate:"required,email" example:"user@example.com"`
}

// -------------------------------响应模型-------------------------------

// AuthResponse 登录/注册/Google 登录成功时 data 字段的内容(扁平结构)
type AuthResponse struct {
	Token        string  `json:"token"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Email        string  `json:"email"`
	ProfileImage *string `json:"profileImage,omitempty"`
}

// ToRecord 转换为本地持久化的 AuthRecord
func (r AuthResponse) ToRecord() AuthRecord {
	return AuthRecord{
		Token: r.Token,
		User: User{
			FirstName:    r.FirstName,
			LastName:     r.LastName,
			Email:        r.Email,
			ProfileImage: r.ProfileImage,
		},
	}
}
