package httpapi

import (
	"net/http"
)

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type walletRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required"`
}

type whoAmIResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	AuthType      string `json:"auth_type"`
	DisplayName   string `json:"display_name"`
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	grant, err := s.auth.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeSuccessJSON(w, grant)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	grant, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeSuccessJSON(w, grant)
}

func (s *Server) connectWallet(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	grant, err := s.auth.ConnectWallet(r.Context(), req.WalletAddress)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeSuccessJSON(w, grant)
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignOut(r.Context(), tokenFromContext(r.Context())); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeSuccessJSON(w, nil)
}

func (s *Server) whoAmI(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	writeSuccessJSON(w, whoAmIResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		WalletAddress: u.WalletAddress,
		AuthType:      string(u.AuthType),
		DisplayName:   u.DisplayName(),
	})
}
