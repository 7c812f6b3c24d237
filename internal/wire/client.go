package wire

import (
	"context"

	"google.golang.org/grpc"
)

// VaultClient is the client side of the service.
type VaultClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	VerifySecondFactor(ctx context.Context, in *VerifySecondFactorRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	GetDocument(ctx context.Context, in *GetDocumentRequest, opts ...grpc.CallOption) (*GetDocumentResponse, error)
	PutDocument(ctx context.Context, in *PutDocumentRequest, opts ...grpc.CallOption) (*PutDocumentResponse, error)
	SetupSecondFactor(ctx context.Context, in *SetupSecondFactorRequest, opts ...grpc.CallOption) (*SetupSecondFactorResponse, error)
	EnableSecondFactor(ctx context.Context, in *EnableSecondFactorRequest, opts ...grpc.CallOption) (*Empty, error)
	SecondFactorStatus(ctx context.Context, in *SecondFactorStatusRequest, opts ...grpc.CallOption) (*SecondFactorStatusResponse, error)
	DisableSecondFactor(ctx context.Context, in *DisableSecondFactorRequest, opts ...grpc.CallOption) (*Empty, error)
	VerifyPremium(ctx context.Context, in *VerifyPremiumRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	PremiumStatus(ctx context.Context, in *PremiumStatusRequest, opts ...grpc.CallOption) (*PremiumStatusResponse, error)
	DisablePremium(ctx context.Context, in *DisablePremiumRequest, opts ...grpc.CallOption) (*Empty, error)
}

type vaultClient struct {
	cc grpc.ClientConnInterface
}

func NewVaultClient(cc grpc.ClientConnInterface) VaultClient {
	return &vaultClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, name string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, "Ping", in, opts)
}

func (c *vaultClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, "Register", in, opts)
}

func (c *vaultClient) GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error) {
	return invoke[GetSaltResponse](ctx, c.cc, "GetSalt", in, opts)
}

func (c *vaultClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, "Login", in, opts)
}

func (c *vaultClient) VerifySecondFactor(ctx context.Context, in *VerifySecondFactorRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, "VerifySecondFactor", in, opts)
}

func (c *vaultClient) GetDocument(ctx context.Context, in *GetDocumentRequest, opts ...grpc.CallOption) (*GetDocumentResponse, error) {
	return invoke[GetDocumentResponse](ctx, c.cc, "GetDocument", in, opts)
}

func (c *vaultClient) PutDocument(ctx context.Context, in *PutDocumentRequest, opts ...grpc.CallOption) (*PutDocumentResponse, error) {
	return invoke[PutDocumentResponse](ctx, c.cc, "PutDocument", in, opts)
}

func (c *vaultClient) SetupSecondFactor(ctx context.Context, in *SetupSecondFactorRequest, opts ...grpc.CallOption) (*SetupSecondFactorResponse, error) {
	return invoke[SetupSecondFactorResponse](ctx, c.cc, "SetupSecondFactor", in, opts)
}

func (c *vaultClient) EnableSecondFactor(ctx context.Context, in *EnableSecondFactorRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "EnableSecondFactor", in, opts)
}

func (c *vaultClient) SecondFactorStatus(ctx context.Context, in *SecondFactorStatusRequest, opts ...grpc.CallOption) (*SecondFactorStatusResponse, error) {
	return invoke[SecondFactorStatusResponse](ctx, c.cc, "SecondFactorStatus", in, opts)
}

func (c *vaultClient) DisableSecondFactor(ctx context.Context, in *DisableSecondFactorRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DisableSecondFactor", in, opts)
}

func (c *vaultClient) VerifyPremium(ctx context.Context, in *VerifyPremiumRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, "VerifyPremium", in, opts)
}

func (c *vaultClient) PremiumStatus(ctx context.Context, in *PremiumStatusRequest, opts ...grpc.CallOption) (*PremiumStatusResponse, error) {
	return invoke[PremiumStatusResponse](ctx, c.cc, "PremiumStatus", in, opts)
}

func (c *vaultClient) DisablePremium(ctx context.Context, in *DisablePremiumRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DisablePremium", in, opts)
}
