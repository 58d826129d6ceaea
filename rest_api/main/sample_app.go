package main

import (
	"context"
	"log"

	"github.com/nuibits/userbase"
	"github.com/nuibits/userbase/aws_s3"
	cas "github.com/nuibits/userbase/cassandra"
	"github.com/nuibits/userbase/common"
	"github.com/nuibits/userbase/redis"
	"github.com/nuibits/userbase/rest_api"
)

// Cassandra Config, please update with your Cassandra Server cluster config.
var cassConfig = cas.Config{
	ClusterHosts: []string{"localhost:9042"},
	Keyspace:     "userbase",
}

// Redis Config, please update with your Redis cluster config.
var redisConfig = redis.Options{
	Address:  "localhost:6379",
	Password: "", // no password set
	DB:       0,  // use default DB
}

// S3 Config, please update with your S3 (or minio) endpoint config.
var s3Config = aws_s3.Config{
	HostEndpointUrl: "http://127.0.0.1:9000",
	Region:          "us-east-1",
	Username:        "minio",
	Password:        "miniosecret",
}

func main() {
	ctx := context.Background()
	userbase.ConfigureLogging()

	options := userbase.DefaultOptions()
	cassConfig.TransactionTable = options.TransactionTableName
	cassConfig.UserTable = options.UserTableName

	if _, err := cas.OpenConnection(cassConfig); err != nil {
		log.Fatal(err)
	}
	defer cas.CloseConnection()
	if _, err := redis.OpenConnection(redisConfig); err != nil {
		log.Fatal(err)
	}
	defer redis.CloseConnection()

	s3Client := aws_s3.Connect(s3Config)
	bundles, err := aws_s3.NewBundleStore(s3Client, options.BundleBucketName)
	if err != nil {
		log.Fatal(err)
	}

	svc := common.NewService(ctx, options, cas.NewTransactionStore(), cas.NewUserRepository(), bundles, redis.NewClient())
	defer svc.Close()

	rest_api.Main(svc, "localhost:8080")
}
