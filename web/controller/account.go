package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beyondbeauty/press/database/model"
	"github.com/beyondbeauty/press/util/common"
	"github.com/beyondbeauty/press/web/entity"
	"github.com/beyondbeauty/press/web/middleware"
	"github.com/beyondbeauty/press/web/service"
	"github.com/beyondbeauty/press/web/session"
)

type AccountController struct {
	auth     *service.AuthService
	accounts *service.AccountService
}

// NewAccountController registers registration, login and account
// administration routes. authMw guards everything past login.
func NewAccountController(g *gin.RouterGroup, auth *service.AuthService, accounts *service.AccountService, authMw gin.HandlerFunc) *AccountController {
	a := &AccountController{auth: auth, accounts: accounts}

	g = g.Group("/accounts")
	g.POST("/register", a.register)
	g.POST("/login", a.login)

	g.GET("/me", authMw, a.me)

	admin := g.Group("", authMw, middleware.RequireRole(string(model.RoleAdmin)))
	admin.GET("", a.list)
	admin.POST("", a.create)
	admin.PUT("/:id", a.update)
	admin.DELETE("/:id", a.remove)
	admin.PATCH("/:id/active", a.setActive)

	return a
}

func (a *AccountController) register(c *gin.Context) {
	a.registerAccount(c, "User registered successfully")
}

// create is the administrator's variant of register. The account is an
// active editor like any other.
func (a *AccountController) create(c *gin.Context) {
	a.registerAccount(c, "User created successfully")
}

func (a *AccountController) registerAccount(c *gin.Context, msg string) {
	var form entity.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, bindError(err))
		return
	}
	account, err := a.auth.Register(service.RegisterRequest{
		Profile: service.Profile{
			Email:         form.Email,
			Username:      form.Username,
			FirstName:     form.FirstName,
			LastName:      form.LastName,
			Age:           form.Age,
			Gender:        form.Gender,
			ContactNumber: form.ContactNumber,
			Address:       form.Address,
		},
		Password: form.Password,
	})
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusCreated, msg, gin.H{"userId": account.Id})
}

func (a *AccountController) login(c *gin.Context) {
	var form entity.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, bindError(err))
		return
	}
	result, err := a.auth.Login(form.Email, form.Password)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, "Login successful", result)
}

func (a *AccountController) me(c *gin.Context) {
	claims := session.GetLoginClaims(c)
	account, err := a.accounts.FindById(claims.AccountId)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, "", service.AccountView(account))
}

func (a *AccountController) list(c *gin.Context) {
	accounts, err := a.accounts.List()
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, "", accounts)
}

func (a *AccountController) setActive(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		jsonError(c, err)
		return
	}
	var form entity.ActiveForm
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, bindError(err))
		return
	}
	account, err := a.accounts.SetActiveById(id, *form.IsActive)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, "", account)
}

func (a *AccountController) update(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		jsonError(c, err)
		return
	}
	var form entity.AccountUpdateForm
	if err := c.ShouldBind(&form); err != nil {
		jsonError(c, bindError(err))
		return
	}
	account, err := a.auth.UpdateAccount(id, service.ProfileUpdate{
		Email:         form.Email,
		Username:      form.Username,
		FirstName:     form.FirstName,
		LastName:      form.LastName,
		Age:           form.Age,
		Gender:        form.Gender,
		ContactNumber: form.ContactNumber,
		Address:       form.Address,
	}, form.Password)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, "User updated successfully", account)
}

func (a *AccountController) remove(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		jsonError(c, err)
		return
	}
	if id == session.GetLoginClaims(c).AccountId {
		jsonError(c, common.NewValidationError("cannot delete your own account", "id"))
		return
	}
	if err := a.accounts.Delete(id); err != nil {
		jsonError(c, err)
		return
	}
	pureJsonMsg(c, http.StatusOK, true, "User deleted successfully")
}
