package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"caixa/internal/api"
)

func (r *Runner) cmdLogin(ctx context.Context, args []string) error {
	fs := r.subFlags("login")
	email := fs.String("email", "", "E-mail (padrão: o último lembrado)")
	remember := fs.Bool("remember", true, "Lembrar o e-mail")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}

	if *email == "" {
		*email = r.sessions.RememberedEmail(ctx)
	}
	if *email == "" {
		*email = r.options.Email
	}
	if *email == "" {
		v, err := r.prompt("E-mail: ")
		if err != nil {
			return err
		}
		*email = v
	}
	password, err := r.prompt("Senha: ")
	if err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" || password == "" {
		return usagef("informe e-mail e senha")
	}

	resp, err := r.sessions.Login(ctx, *email, password, *remember)
	if errors.Is(err, api.ErrUnauthorized) {
		return fmt.Errorf("%w: %w", errBadCredentials, err)
	}
	if err != nil {
		return err
	}
	r.printf("Bem-vindo, %s (%s).\n", r.name(resp.User.Name), resp.CompanyName)
	return nil
}

func (r *Runner) cmdSignup(ctx context.Context, args []string) error {
	fs := r.subFlags("signup")
	var in api.RegisterAccountRequest
	fs.StringVar(&in.Name, "name", "", "Seu nome")
	fs.StringVar(&in.Email, "email", "", "E-mail")
	fs.StringVar(&in.CompanyName, "company", "", "Nome da empresa")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}
	if in.Name == "" || in.Email == "" || in.CompanyName == "" {
		return usagef("informe -name, -email e -company")
	}
	password, err := r.prompt("Senha: ")
	if err != nil {
		return err
	}
	in.Password = password

	resp, err := r.sessions.SignUp(ctx, in)
	if err != nil {
		return err
	}
	r.printf("Conta criada para %s.\n", resp.CompanyName)
	return nil
}

func (r *Runner) cmdLogout(ctx context.Context, _ []string) error {
	if err := r.sessions.Logout(ctx); err != nil {
		return err
	}
	r.println("Sessão encerrada.")
	return nil
}
