package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/forms"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
)

// userForm is the template data of the add and edit account pages.
type userForm struct {
	Action string
	// Worker shows the worker-only fields and fixes the role.
	Worker        bool
	Edit          bool
	Values        forms.User
	OriginalEmail string
	Errors        forms.Errors
}

func (h *AdminHandler) renderUserForm(w http.ResponseWriter, r *http.Request, status int, title string, f userForm, errMsg string) {
	data := h.pageData(w, r, title)
	data["Form"] = f
	if errMsg != "" {
		data["Error"] = errMsg
	}
	h.Templates.Render(w, status, "user_form.html", data)
}

func (h *AdminHandler) AddUserForm(w http.ResponseWriter, r *http.Request) {
	h.renderUserForm(w, r, http.StatusOK, "Add User", userForm{
		Action: "/add-user",
		Values: forms.User{IsActive: "Yes", Status: models.StatusVerified, Role: "customer"},
	}, "")
}

func (h *AdminHandler) AddWorkerForm(w http.ResponseWriter, r *http.Request) {
	h.renderUserForm(w, r, http.StatusOK, "Add Worker", userForm{
		Action: "/add-worker",
		Worker: true,
		Values: forms.User{IsActive: "Yes", Status: models.StatusVerified, Role: string(models.RoleWorker)},
	}, "")
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	h.createAccount(w, r, "", "Add User", "/add-user", "/users", "User added successfully!")
}

func (h *AdminHandler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	h.createAccount(w, r, string(models.RoleWorker), "Add Worker", "/add-worker", "/workers", "Worker added successfully!")
}

func (h *AdminHandler) createAccount(w http.ResponseWriter, r *http.Request, role, title, action, done, okMsg string) {
	form := forms.ParseUser(r, role)
	f := userForm{Action: action, Worker: role == string(models.RoleWorker), Values: form}
	f.Values.Password = ""

	if err := forms.Validate(form); err != nil {
		f.Errors, _ = asFormErrors(err)
		h.renderUserForm(w, r, http.StatusUnprocessableEntity, title, f, errorMessage(err))
		return
	}
	if err := h.API.AddUser(r.Context(), form.Input()); err != nil {
		slog.Warn("Add user failed", "email", form.Email, "error", err)
		h.renderUserForm(w, r, statusFor(err), title, f, errorMessage(err))
		return
	}
	slog.Info("User created", "email", form.Email, "role", form.Role)
	h.flash(w, r, "success", okMsg)
	http.Redirect(w, r, done, http.StatusSeeOther)
}

func (h *AdminHandler) UserDetail(w http.ResponseWriter, r *http.Request) {
	h.accountDetail(w, r, false)
}

func (h *AdminHandler) WorkerDetail(w http.ResponseWriter, r *http.Request) {
	h.accountDetail(w, r, true)
}

func (h *AdminHandler) accountDetail(w http.ResponseWriter, r *http.Request, worker bool) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	title, action := detailTarget(worker, id)

	d, err := h.API.GetUser(r.Context(), id)
	if err != nil {
		slog.Warn("Failed to load user", "id", id, "error", err)
		data := h.pageData(w, r, title)
		data["Error"] = api.Message(err)
		h.Templates.Render(w, statusFor(err), "user_form.html", data)
		return
	}

	values := forms.User{
		FirstName: d.User.FirstName,
		LastName:  d.User.LastName,
		Email:     d.User.Email,
		Phone:     d.User.Phone,
		Role:      d.User.Role,
		Status:    d.User.Status,
		IsActive:  "No",
	}
	if d.User.IsActive {
		values.IsActive = "Yes"
	}
	// The API stores customers under the "user" role.
	if values.Role == "user" {
		values.Role = "customer"
	}
	if d.Worker != nil {
		values.Specialization = d.Worker.Specialization
		values.Location = d.Worker.Location
	}
	h.renderUserForm(w, r, http.StatusOK, title, userForm{
		Action:        action,
		Worker:        worker,
		Edit:          true,
		Values:        values,
		OriginalEmail: d.User.Email,
	}, "")
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	h.updateAccount(w, r, false)
}

func (h *AdminHandler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	h.updateAccount(w, r, true)
}

func (h *AdminHandler) updateAccount(w http.ResponseWriter, r *http.Request, worker bool) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	title, action := detailTarget(worker, id)
	form := forms.ParseUserUpdate(r)
	original := r.FormValue("originalEmail")

	f := userForm{Action: action, Worker: worker, Edit: true, Values: forms.User(form), OriginalEmail: original}
	f.Values.Password = ""

	if err := forms.Validate(form); err != nil {
		f.Errors, _ = asFormErrors(err)
		h.renderUserForm(w, r, http.StatusUnprocessableEntity, title, f, errorMessage(err))
		return
	}
	if err := h.API.UpdateUser(r.Context(), id, form.Input(original)); err != nil {
		slog.Warn("Update user failed", "id", id, "error", err)
		h.renderUserForm(w, r, statusFor(err), title, f, errorMessage(err))
		return
	}
	slog.Info("User updated", "id", id)
	h.flash(w, r, "success", "User updated successfully!")
	if worker {
		http.Redirect(w, r, "/workers", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func detailTarget(worker bool, id int) (title, action string) {
	if worker {
		return "Edit Worker", "/specific-worker/" + strconv.Itoa(id)
	}
	return "Edit User", "/specific-user/" + strconv.Itoa(id)
}

func asFormErrors(err error) (forms.Errors, bool) {
	var ferrs forms.Errors
	ok := errors.As(err, &ferrs)
	return ferrs, ok
}
