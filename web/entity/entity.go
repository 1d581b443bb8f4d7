// Package entity defines the request forms and response envelope of the
// press HTTP API.
package entity

// Msg is the envelope of every JSON response.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// RegisterForm is the self-registration body. It has no role or active
// field, so a client cannot set either.
type RegisterForm struct {
	FirstName     string `json:"firstName" form:"firstName"`
	LastName      string `json:"lastName" form:"lastName"`
	Age           int    `json:"age" form:"age" binding:"gte=0,lte=150"`
	Gender        string `json:"gender" form:"gender"`
	ContactNumber string `json:"contactNumber" form:"contactNumber"`
	Email         string `json:"email" form:"email" binding:"required,email"`
	Username      string `json:"username" form:"username" binding:"required,max=64"`
	Password      string `json:"password" form:"password" binding:"required"`
	Address       string `json:"address" form:"address"`
}

type LoginForm struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type ActiveForm struct {
	IsActive *bool `json:"isActive" form:"isActive" binding:"required"`
}

// AccountUpdateForm is an administrator's change to an account. Only fields
// present in the body are applied; role and active state are not among them.
type AccountUpdateForm struct {
	FirstName     *string `json:"firstName" form:"firstName"`
	LastName      *string `json:"lastName" form:"lastName"`
	Age           *int    `json:"age" form:"age" binding:"omitempty,gte=0,lte=150"`
	Gender        *string `json:"gender" form:"gender"`
	ContactNumber *string `json:"contactNumber" form:"contactNumber"`
	Email         *string `json:"email" form:"email" binding:"omitempty,email"`
	Username      *string `json:"username" form:"username" binding:"omitempty,max=64"`
	Password      *string `json:"password" form:"password"`
	Address       *string `json:"address" form:"address"`
}
