/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package config defines the server's flat configuration struct and its
// validation rules, bound through viper so it can be populated from a
// config file, environment variables or command-line flags in that
// precedence order.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	liberr "github.com/sabouaram/aserve/errors"
)

func init() {
	liberr.RegisterIdFctMessage(liberr.MinPkgAServeCfg, messages)
}

const (
	ErrValidate liberr.CodeError = liberr.MinPkgAServeCfg + iota
	ErrUnmarshal
)

func messages(code liberr.CodeError) string {
	switch code {
	case ErrValidate:
		return "configuration failed validation"
	case ErrUnmarshal:
		return "failed to unmarshal configuration"
	default:
		return liberr.NullMessage
	}
}

// Config is the full set of knobs the CLI exposes, equally reachable by
// flag, environment variable (ASERVE_ prefix) or config file key.
type Config struct {
	App     string `mapstructure:"app" validate:"required"`
	Host    string `mapstructure:"host" validate:"required,ip|hostname"`
	Port    int    `mapstructure:"port" validate:"required,gt=0,lte=65535"`
	Workers int    `mapstructure:"workers" validate:"required,gt=0"`
	LogLevel string `mapstructure:"log-level" validate:"required,oneof=trace debug info warn error"`
}

// Default returns the baseline configuration the CLI starts from before
// flags/env/file overrides are applied.
func Default() Config {
	return Config{
		Host:     "0.0.0.0",
		Port:     8000,
		Workers:  1,
		LogLevel: "info",
	}
}

// Load reads Config out of v, applying mapstructure tag names, and
// validates the result.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, liberr.New(ErrUnmarshal.Uint16(), ErrUnmarshal.Message(), err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate runs struct tag validation and folds every failing field into
// a single descriptive error, the same two-step pattern the httpserver
// config in this codebase's lineage uses.
func (c Config) Validate() error {
	val := validator.New()

	if err := val.Struct(c); err != nil {
		var msgs []string
		for _, fe := range err.(validator.ValidationErrors) {
			msgs = append(msgs, fmt.Sprintf("field %q failed on %q", fe.Field(), fe.Tag()))
		}
		return liberr.New(ErrValidate.Uint16(), ErrValidate.Message()+": "+strings.Join(msgs, "; "), err)
	}

	return nil
}
