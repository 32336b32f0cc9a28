package rpcServer

import (
	"net/http"
)

type healthResponse struct {
	Status string `json:"status"`
}

func (rpc *RpcServer) handleHealth(w http.ResponseWriter, r *http.Request) error {
	return WriteJSON(w, healthResponse{Status: "ok"})
}

func (rpc *RpcServer) handleGetDelegator(w http.ResponseWriter, r *http.Request) error {
	d, err := rpc.service.GetDelegator(r.Context(), addressVar(r))
	if err != nil {
		return err
	}
	return WriteJSON(w, d)
}

func (rpc *RpcServer) handleGetDelegatorRewards(w http.ResponseWriter, r *http.Request) error {
	opts, err := rewardsQueryOptions(r)
	if err != nil {
		return err
	}
	res, err := rpc.service.GetDelegatorStakingRewards(r.Context(), addressVar(r), opts)
	if err != nil {
		return err
	}
	return WriteJSON(w, res)
}

func (rpc *RpcServer) handleGetGuardians(w http.ResponseWriter, r *http.Request) error {
	guardians, err := rpc.service.GetGuardians(r.Context())
	if err != nil {
		return err
	}
	return WriteJSON(w, guardians)
}

func (rpc *RpcServer) handleGetGuardian(w http.ResponseWriter, r *http.Request) error {
	g, err := rpc.service.GetGuardian(r.Context(), addressVar(r))
	if err != nil {
		return err
	}
	return WriteJSON(w, g)
}

func (rpc *RpcServer) handleGetGuardianRewards(w http.ResponseWriter, r *http.Request) error {
	opts, err := rewardsQueryOptions(r)
	if err != nil {
		return err
	}
	res, err := rpc.service.GetGuardianStakingRewards(r.Context(), addressVar(r), opts)
	if err != nil {
		return err
	}
	return WriteJSON(w, res)
}

func (rpc *RpcServer) handleGetOverview(w http.ResponseWriter, r *http.Request) error {
	overview, err := rpc.service.GetOverview(r.Context())
	if err != nil {
		return err
	}
	return WriteJSON(w, overview)
}
