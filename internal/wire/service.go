package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "vaultify.Vault"

// FullMethod returns the gRPC path of a method of the service.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// VaultServer is implemented by the reference server.
type VaultServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	VerifySecondFactor(context.Context, *VerifySecondFactorRequest) (*SessionResponse, error)
	GetDocument(context.Context, *GetDocumentRequest) (*GetDocumentResponse, error)
	PutDocument(context.Context, *PutDocumentRequest) (*PutDocumentResponse, error)
	SetupSecondFactor(context.Context, *SetupSecondFactorRequest) (*SetupSecondFactorResponse, error)
	EnableSecondFactor(context.Context, *EnableSecondFactorRequest) (*Empty, error)
	SecondFactorStatus(context.Context, *SecondFactorStatusRequest) (*SecondFactorStatusResponse, error)
	DisableSecondFactor(context.Context, *DisableSecondFactorRequest) (*Empty, error)
	VerifyPremium(context.Context, *VerifyPremiumRequest) (*SessionResponse, error)
	PremiumStatus(context.Context, *PremiumStatusRequest) (*PremiumStatusResponse, error)
	DisablePremium(context.Context, *DisablePremiumRequest) (*Empty, error)
}

// UnimplementedVaultServer can be embedded to satisfy VaultServer.
type UnimplementedVaultServer struct{}

func unimplemented(name string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", name)
}

func (UnimplementedVaultServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented("Ping")
}
func (UnimplementedVaultServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedVaultServer) GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error) {
	return nil, unimplemented("GetSalt")
}
func (UnimplementedVaultServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedVaultServer) VerifySecondFactor(context.Context, *VerifySecondFactorRequest) (*SessionResponse, error) {
	return nil, unimplemented("VerifySecondFactor")
}
func (UnimplementedVaultServer) GetDocument(context.Context, *GetDocumentRequest) (*GetDocumentResponse, error) {
	return nil, unimplemented("GetDocument")
}
func (UnimplementedVaultServer) PutDocument(context.Context, *PutDocumentRequest) (*PutDocumentResponse, error) {
	return nil, unimplemented("PutDocument")
}
func (UnimplementedVaultServer) SetupSecondFactor(context.Context, *SetupSecondFactorRequest) (*SetupSecondFactorResponse, error) {
	return nil, unimplemented("SetupSecondFactor")
}
func (UnimplementedVaultServer) EnableSecondFactor(context.Context, *EnableSecondFactorRequest) (*Empty, error) {
	return nil, unimplemented("EnableSecondFactor")
}
func (UnimplementedVaultServer) SecondFactorStatus(context.Context, *SecondFactorStatusRequest) (*SecondFactorStatusResponse, error) {
	return nil, unimplemented("SecondFactorStatus")
}
func (UnimplementedVaultServer) DisableSecondFactor(context.Context, *DisableSecondFactorRequest) (*Empty, error) {
	return nil, unimplemented("DisableSecondFactor")
}
func (UnimplementedVaultServer) VerifyPremium(context.Context, *VerifyPremiumRequest) (*SessionResponse, error) {
	return nil, unimplemented("VerifyPremium")
}
func (UnimplementedVaultServer) PremiumStatus(context.Context, *PremiumStatusRequest) (*PremiumStatusResponse, error) {
	return nil, unimplemented("PremiumStatus")
}
func (UnimplementedVaultServer) DisablePremium(context.Context, *DisablePremiumRequest) (*Empty, error) {
	return nil, unimplemented("DisablePremium")
}

func unary[Req, Resp any](name string, call func(VaultServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(VaultServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(VaultServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// VaultServiceDesc describes the service for grpc.Server.RegisterService.
var VaultServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", VaultServer.Ping),
		unary("Register", VaultServer.Register),
		unary("GetSalt", VaultServer.GetSalt),
		unary("Login", VaultServer.Login),
		unary("VerifySecondFactor", VaultServer.VerifySecondFactor),
		unary("GetDocument", VaultServer.GetDocument),
		unary("PutDocument", VaultServer.PutDocument),
		unary("SetupSecondFactor", VaultServer.SetupSecondFactor),
		unary("EnableSecondFactor", VaultServer.EnableSecondFactor),
		unary("SecondFactorStatus", VaultServer.SecondFactorStatus),
		unary("DisableSecondFactor", VaultServer.DisableSecondFactor),
		unary("VerifyPremium", VaultServer.VerifyPremium),
		unary("PremiumStatus", VaultServer.PremiumStatus),
		unary("DisablePremium", VaultServer.DisablePremium),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vaultify/vault",
}

func RegisterVaultServer(s grpc.ServiceRegistrar, srv VaultServer) {
	s.RegisterService(&VaultServiceDesc, srv)
}
