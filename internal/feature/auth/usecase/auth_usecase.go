package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	jwtmw "stock_signals/internal/platform/jwt"
)

// EnvKeyOperatorPasswordHash は運用者パスワードの bcrypt ハッシュを保持する環境変数名です。
const EnvKeyOperatorPasswordHash = "OPERATOR_PASSWORD_HASH"

// ユーザーが一致しない場合のタイミング攻撃緩和用ダミーハッシュ
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// JWTGenerator はJWTトークン生成のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type JWTGenerator interface {
	GenerateToken(subject, role string) (string, error)
}

// Credentials は運用者アカウントです。利用者は一人だけで、DBには保存しません。
type Credentials struct {
	Username     string
	PasswordHash string
}

// LoadCredentials は username と環境変数のハッシュから Credentials を組み立てます。
func LoadCredentials(username string) Credentials {
	return Credentials{Username: username, PasswordHash: os.Getenv(EnvKeyOperatorPasswordHash)}
}

// AuthUsecase は運用者ログインを実装します。
type AuthUsecase struct {
	creds        Credentials
	jwtGenerator JWTGenerator
}

// NewAuthUsecase はAuthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(creds Credentials, jwtGenerator JWTGenerator) *AuthUsecase {
	return &AuthUsecase{creds: creds, jwtGenerator: jwtGenerator}
}

// Login は運用者を認証し、成功時にJWTトークンを返します。
// ユーザー名が一致しない場合でもbcrypt比較を実行します。
func (u *AuthUsecase) Login(ctx context.Context, username, password string) (string, error) {
	if u.creds.PasswordHash == "" {
		return "", ErrLoginDisabled
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(u.creds.Username)) == 1
	hash := u.creds.PasswordHash
	if !userOK {
		hash = dummyHash
	}

	// 第1引数はハッシュ化パスワード、第2引数は平文パスワード
	compareErr := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if !userOK || compareErr != nil {
		return "", ErrInvalidCredentials
	}

	token, err := u.jwtGenerator.GenerateToken(u.creds.Username, jwtmw.RoleOperator)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}
